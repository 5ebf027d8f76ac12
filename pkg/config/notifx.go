package config

import "net/mail"

// NotifxConfig configures account notification emails.
type NotifxConfig struct {
	Provider         string // console | ses
	FromAddress      string
	FromName         string
	AWSRegion        string
	ConfigurationSet string
}

// Sender is the From header: "Name <address>", or the bare address.
func (n NotifxConfig) Sender() string {
	if n.FromName == "" {
		return n.FromAddress
	}
	return (&mail.Address{Name: n.FromName, Address: n.FromAddress}).String()
}

func loadNotifxConfig() NotifxConfig {
	return NotifxConfig{
		Provider:         getEnv("NOTIFX_PROVIDER", "console"),
		FromAddress:      getEnv("NOTIFX_FROM_ADDRESS", "noreply@staffhub.local"),
		FromName:         getEnv("NOTIFX_FROM_NAME", "Staffhub"),
		AWSRegion:        getEnv("NOTIFX_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
		ConfigurationSet: getEnv("NOTIFX_SES_CONFIGURATION_SET", ""),
	}
}
