package ws

import "github.com/comalice/reactiontask/internal/core"

type MessageType string

const (
	MsgSnapshot   MessageType = "snapshot"
	MsgSignal     MessageType = "signal"
	MsgSignalStop MessageType = "signal_stop"
	MsgDebug      MessageType = "debug"
	MsgTransition MessageType = "transition"
	MsgSample     MessageType = "sample"
	MsgExport     MessageType = "export"
	MsgError      MessageType = "error"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// CommandType names a client request sent over the websocket.
type CommandType string

const (
	CmdStart     CommandType = "start"
	CmdStop      CommandType = "stop"
	CmdRespond   CommandType = "respond"
	CmdMilestone CommandType = "milestone"
	CmdEvent     CommandType = "event"
	CmdExport    CommandType = "export"
)

type Command struct {
	Type   CommandType `json:"type"`
	Tag    string      `json:"tag,omitempty"`
	Name   string      `json:"name,omitempty"`
	Format string      `json:"format,omitempty"`
}

type SnapshotPayload struct {
	Session core.Snapshot `json:"session"`
}

type DebugPayload struct {
	Line string `json:"line"`
}

type ExportPayload struct {
	Format    string `json:"format"`
	Reactions string `json:"reactions"`
	Events    string `json:"events"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
