// Package common provides shared helpers for MCP tool registration, most
// notably handler wrappers that add metrics recording and audit logging
// around every tool invocation.
package common
