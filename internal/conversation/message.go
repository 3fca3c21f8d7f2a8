package conversation

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat entry. ID is immutable once created; Text is
// rewritten in place while an answer streams in.
type Message struct {
	ID   string
	Role Role
	Text string
}
