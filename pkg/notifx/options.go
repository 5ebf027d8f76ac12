package notifx

// SendOptions is what providers may honour beyond the message itself.
type SendOptions struct {
	Tags             map[string]string
	ConfigurationSet string
}

type Option func(*SendOptions)

// WithTag adds one message tag; later tags with the same key win.
func WithTag(key, value string) Option {
	return func(o *SendOptions) {
		if o.Tags == nil {
			o.Tags = make(map[string]string)
		}
		o.Tags[key] = value
	}
}

// WithConfigurationSet routes the message through an SES configuration set.
func WithConfigurationSet(name string) Option {
	return func(o *SendOptions) { o.ConfigurationSet = name }
}

func ApplySendOptions(opts []Option) SendOptions {
	var so SendOptions
	for _, opt := range opts {
		opt(&so)
	}
	return so
}
