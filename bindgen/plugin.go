package bindgen

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"sync"

	"go.uber.org/zap"
)

// PluginGenerator executes an external plugin as a generator.
// The name of the plugin executable is given by the generator's
// Prefix and Name fields.
type PluginGenerator struct {
	*exec.Cmd

	Name   string
	Prefix string

	lookOnce    sync.Once
	path        string
	lookPathErr error
	log         *zap.Logger
}

// pluginRequest is written to the plugin's stdin as JSON.
type pluginRequest struct {
	Schema    string                 `json:"schema"`
	Generator string                 `json:"generator"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

// pluginResponse is read from the plugin's stdout as JSON.
type pluginResponse struct {
	Source string `json:"source,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Generate executes the plugin with the given schema text.
func (g *PluginGenerator) Generate(ctx context.Context, schema string, opts map[string]interface{}) (src string, err error) {
	defer func() {
		if err == nil {
			return
		}
		if _, ok := err.(GeneratorError); ok {
			return
		}
		err = GeneratorError{
			GenName: g.Prefix + g.Name,
			Msg:     err.Error(),
		}
	}()

	if g.log == nil {
		g.log = zap.L().Named(g.Name)
	}

	// Lookup plugin only once
	g.lookOnce.Do(func() {
		pluginName := g.Prefix + g.Name
		g.path, g.lookPathErr = exec.LookPath(pluginName)
	})
	if g.lookPathErr != nil {
		err = g.lookPathErr
		return
	}

	g.log.Info("marshalling request")
	b, err := json.Marshal(pluginRequest{
		Schema:    schema,
		Generator: g.Name,
		Options:   opts,
	})
	if err != nil {
		return
	}

	// Configure plugin command
	if g.Cmd == nil {
		g.Cmd = exec.CommandContext(ctx, g.path)
	}
	out := new(bytes.Buffer)
	g.Stdin = bytes.NewReader(b)
	g.Stdout = out

	g.log.Info("executing plugin")
	err = g.Run()
	g.Cmd = nil
	if err != nil {
		return
	}

	g.log.Info("unmarshalling response")
	var resp pluginResponse
	if err = json.Unmarshal(out.Bytes(), &resp); err != nil {
		return
	}

	if resp.Error != "" {
		return "", GeneratorError{GenName: g.Prefix + g.Name, Msg: resp.Error}
	}

	return resp.Source, nil
}
