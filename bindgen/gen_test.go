package bindgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `type Query {
  user(id: ID!): User
  users(limit: Int): [User!]!
}

type Mutation {
  createUser(input: UserInput!): User!
}

type Subscription {
  userCreated: User!
}

type User {
  id: ID!
  name: String
  role: Role!
}

input UserInput {
  name: String!
}

enum Role {
  ADMIN
  USER
}

scalar DateTime
`

func TestJsGenerator(t *testing.T) {
	src, err := JsGenerator{}.Generate(context.Background(), testSchema, nil)
	require.NoError(t, err)

	assert.Contains(t, src, "require('graphql-binding')")
	assert.Contains(t, src, "user: (args, info) => this.delegate('query', 'user', args, {}, info)")
	assert.Contains(t, src, "createUser: (args, info) => this.delegate('mutation', 'createUser', args, {}, info)")
	assert.Contains(t, src, "userCreated: (args, infoOrQuery) => this.delegateSubscription('userCreated', args, infoOrQuery)")
}

func TestJsGeneratorBadSchema(t *testing.T) {
	_, err := JsGenerator{}.Generate(context.Background(), "type {", nil)
	require.Error(t, err)
	assert.IsType(t, GeneratorError{}, err)
}

func TestTsGenerator(t *testing.T) {
	src, err := TsGenerator{}.Generate(context.Background(), testSchema, nil)
	require.NoError(t, err)

	assert.Contains(t, src, "import { Binding as BaseBinding, BindingOptions } from 'graphql-binding'")

	// typed interfaces for schema types
	assert.Contains(t, src, "export interface User {")
	assert.Contains(t, src, "id: string")
	assert.Contains(t, src, "name: string | null")
	assert.Contains(t, src, "role: Role")
	assert.Contains(t, src, "export type Role = 'ADMIN' | 'USER'")
	assert.Contains(t, src, "export type DateTime = any")
	assert.Contains(t, src, "export interface UserInput {")

	// typed delegating methods
	assert.Contains(t, src, "user = (args: { id: string }, info?: GraphQLResolveInfo | string): Promise<User | null>")
	assert.Contains(t, src, "users = (args: { limit?: number | null }, info?: GraphQLResolveInfo | string): Promise<Array<User>>")
	assert.Contains(t, src, "createUser = (args: { input: UserInput }, info?: GraphQLResolveInfo | string): Promise<User>")
	assert.Contains(t, src, "userCreated = (args: {}, infoOrQuery?: GraphQLResolveInfo | string): Promise<AsyncIterator<User>>")

	// root types are not re-emitted as interfaces
	assert.NotContains(t, src, "export interface Query")
}

func TestLookup(t *testing.T) {
	Register("test-gen", JsGenerator{})
	defer delete(gens, "test-gen")

	assert.NotNil(t, Lookup("test-gen"))

	AllowPlugins("")
	assert.Nil(t, Lookup("unknown"), "no plugin fallback without a prefix")

	AllowPlugins("graphql-prepare-gen-")
	defer AllowPlugins("")

	g := Lookup("unknown")
	require.NotNil(t, g)

	pg, ok := g.(*PluginGenerator)
	require.True(t, ok)
	assert.Equal(t, "unknown", pg.Name)
	assert.Equal(t, "graphql-prepare-gen-", pg.Prefix)
}

func TestPluginGeneratorMissingExecutable(t *testing.T) {
	g := &PluginGenerator{Name: "definitely-not-installed", Prefix: "graphql-prepare-gen-"}

	_, err := g.Generate(context.Background(), testSchema, nil)
	require.Error(t, err)

	gerr, ok := err.(GeneratorError)
	require.True(t, ok)
	assert.Equal(t, "graphql-prepare-gen-definitely-not-installed", gerr.GenName)
}

func TestRootFieldsSkipsMeta(t *testing.T) {
	s, err := loadSchema("test", testSchema)
	require.NoError(t, err)

	for _, f := range rootFields(s.Query) {
		assert.NotContains(t, f.Name, "__")
	}
	assert.Len(t, rootFields(s.Query), 2)
	assert.Nil(t, rootFields(nil))
}
