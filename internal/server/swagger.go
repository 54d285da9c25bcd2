package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title favicond API
// @version 0.1
// @description Batch favicon resolution over HTTP and WebSocket.
// @contact.name favicond maintainers
// @contact.url https://github.com/raysh454/favicond
// @BasePath /
