package domain

// UserID is the platform-assigned Telegram user identifier.
type UserID int64

// CampaignTag labels the marketing source a user came from.
type CampaignTag string

// DefaultCampaign is used when a /start payload carries no tag.
const DefaultCampaign CampaignTag = "direct"

// FunnelState is the user's position in the referral funnel.
// States only move forward; a smaller value never replaces a larger one.
type FunnelState int

const (
	StateNone FunnelState = iota
	StateStarted
	StateJoined
	StateDeposited
)

func (s FunnelState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateStarted:
		return "started"
	case StateJoined:
		return "joined"
	case StateDeposited:
		return "deposited"
	}
	return "unknown"
}

// EventKind enumerates the update kinds this bot acts on. Anything the
// classifier cannot map to one of these is dropped.
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventJoinRequest
	EventCallback
	EventProof
)

// Event is an inbound update normalized for the handlers. Handlers never
// see the raw Telegram payload.
type Event struct {
	Kind EventKind
	User UserID

	// ChatID is the chat to reply in. Zero for join requests, which are
	// answered via the channel approval call.
	ChatID int64

	// Payload is the text after the /start command, for EventStart.
	Payload string

	// Name is the sender's first name, used only for greetings.
	Name string

	// Callback fields, set for EventCallback. MessageID is zero when the
	// originating message is no longer available for editing.
	CallbackID   string
	CallbackData string
	MessageID    int
}
