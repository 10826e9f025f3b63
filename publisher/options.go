package publisher

// DefaultSubject is the prefix of the NATS subjects used by default.
const DefaultSubject = "soundmeter"

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters of the NATS publisher.
type Options struct {
	BrokerURL  string
	BrokerPort int
	Username   string
	Password   string
	Subject    string
}

// BrokerURL is a functional option to set the host of the NATS broker.
func BrokerURL(url string) Option {
	return func(args *Options) {
		args.BrokerURL = url
	}
}

// BrokerPort is a functional option to set the port of the NATS broker.
func BrokerPort(port int) Option {
	return func(args *Options) {
		args.BrokerPort = port
	}
}

// Username is a functional option to set the NATS username.
func Username(name string) Option {
	return func(args *Options) {
		args.Username = name
	}
}

// Password is a functional option to set the NATS password.
func Password(pw string) Option {
	return func(args *Options) {
		args.Password = pw
	}
}

// Subject is a functional option to set the prefix of the NATS subjects.
func Subject(s string) Option {
	return func(args *Options) {
		args.Subject = s
	}
}
