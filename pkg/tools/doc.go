// Package tools provides tool registration and MCP (Model Context Protocol) integration.
//
// It is organized into sub-packages:
//   - [github.com/M1ngY/sorano-ai-chat-tools-peter/pkg/tools/toolbox] — Tool type and ToolBox orchestrator for registering, listing, and calling tools
//   - [github.com/M1ngY/sorano-ai-chat-tools-peter/pkg/tools/mcpserver] — MCP server using the official MCP Go SDK for exposing tools over the MCP protocol
//
// The toolbox sub-package is the foundation layer: the chat tool packages
// under pkg/chattools produce toolbox.Tool values, and mcpserver exposes them
// to an external agent orchestrator. The mcpserver package is a thin wrapper
// around the official MCP Go SDK (github.com/modelcontextprotocol/go-sdk).
package tools
