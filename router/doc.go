// Package router mounts the API handler behind four built-in stages: request
// logging, CORS, OpenAPI request validation and a handler deadline. Each
// stage can be switched off with Without, and custom middlewares can be added
// around or inside them.
package router
