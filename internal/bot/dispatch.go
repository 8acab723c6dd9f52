package bot

const (
	WelcomeReply = "Welcome! I am your automated bot. How can I help you today?"
	HelpReply    = "Available commands:\n/start - Start the bot\n/help - Show this help message\n/status - Check bot status"
	StatusReply  = "Bot is running and ready to serve!"

	LikeReply          = "Thanks for the like! ❤️"
	SubscribeReply     = "Thanks for subscribing! 🔔"
	UnknownActionReply = "Unknown action"

	// CallbackAck is shown by the platform when a button press is acknowledged.
	CallbackAck = "Button clicked!"
)

// Inbound is what a reply function gets to see about the triggering event.
type Inbound struct {
	ChatID   int64
	FromID   int64
	Username string
	Key      string // message text or callback payload
}

// ReplyFunc produces the reply text for an inbound event.
type ReplyFunc func(in Inbound) string

// ReplyTable maps an exact inbound key to its reply. New commands are entries, not branches.
type ReplyTable map[string]ReplyFunc

// Static returns a ReplyFunc that always answers text.
func Static(text string) ReplyFunc {
	return func(Inbound) string { return text }
}

func DefaultCommands() ReplyTable {
	return ReplyTable{
		"/start":  Static(WelcomeReply),
		"/help":   Static(HelpReply),
		"/status": Static(StatusReply),
	}
}

func DefaultActions() ReplyTable {
	return ReplyTable{
		"like":      Static(LikeReply),
		"subscribe": Static(SubscribeReply),
	}
}

// Dispatcher resolves inbound text and callback payloads against static tables.
type Dispatcher struct {
	Commands ReplyTable
	Actions  ReplyTable
	// UnknownAction answers callbacks with no table entry.
	UnknownAction ReplyFunc
}

func DefaultDispatcher() Dispatcher {
	return Dispatcher{
		Commands:      DefaultCommands(),
		Actions:       DefaultActions(),
		UnknownAction: Static(UnknownActionReply),
	}
}

// ReplyToText looks up exact message text. Unknown text gets no reply.
func (d Dispatcher) ReplyToText(in Inbound) (string, bool) {
	fn, ok := d.Commands[in.Key]
	if !ok || fn == nil {
		return "", false
	}
	return fn(in), true
}

// ReplyToCallback matches the callback data exactly and always yields a reply: the action entry or the unknown-action fallback.
func (d Dispatcher) ReplyToCallback(in Inbound) string {
	if fn, ok := d.Actions[in.Key]; ok && fn != nil {
		return fn(in)
	}
	if d.UnknownAction != nil {
		return d.UnknownAction(in)
	}
	return UnknownActionReply
}
