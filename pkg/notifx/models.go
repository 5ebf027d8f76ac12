package notifx

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	From     string   `json:"from"`
	To       []string `json:"to"`
	ReplyTo  string   `json:"reply_to,omitempty"`
	Subject  string   `json:"subject"`
	TextBody string   `json:"text_body,omitempty"`
	HTMLBody string   `json:"html_body,omitempty"`
}

// AccountCreated is the data of the welcome email sent after provisioning.
// Credentials are delivered by the identity provider, never here.
type AccountCreated struct {
	Email     string
	FirstName string
	UserType  string
	ShiftCode string
	QRCodeURL string
}

// PasswordResetByAdmin tells a user an administrator replaced their password.
type PasswordResetByAdmin struct {
	Email   string
	ResetBy string
}
