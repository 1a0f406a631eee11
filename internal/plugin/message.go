package plugin

type MessageType string

const MessageText MessageType = "text"

type ToolInvokeMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

func NewTextMessage(text string) ToolInvokeMessage {
	return ToolInvokeMessage{Type: MessageText, Message: text}
}
