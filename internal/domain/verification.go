package domain

// Verification channels. The channel doubles as the DynamoDB sort key so one
// destination can hold at most one pending code per channel.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Verification stores a pending one-time passcode.
// PK: destination (email address or E.164 phone number), SK: channel.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type Verification struct {
	Destination string `json:"destination" dynamodbav:"destination"`
	Channel     string `json:"channel" dynamodbav:"channel"` // "email" | "sms"
	Code        string `json:"code" dynamodbav:"code"`
	ExpiresAt   int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
