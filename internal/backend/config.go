package backend

import (
	"fmt"

	"spendwise/internal/config"
)

// FromAppConfig converts the application config to notifier config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	transport := Transport(appConfig.NotifyTransport)
	if !transport.IsValid() {
		return Config{}, fmt.Errorf("invalid notify transport in config: %s", appConfig.NotifyTransport)
	}

	return Config{
		Transport:    transport,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
		SMTP:         appConfig.SMTP,
	}, nil
}

// Validate validates the notifier configuration
func (c Config) Validate() error {
	if !c.Transport.IsValid() {
		return fmt.Errorf("invalid notify transport: %s", c.Transport)
	}

	switch c.Transport {
	case SMTPTransport:
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required for smtp transport")
		}
		if c.SMTP.FromEmail == "" {
			return fmt.Errorf("SMTP from address is required for smtp transport")
		}

	case AMQPTransport:
		if c.AMQPURL == "" {
			return fmt.Errorf("AMQP URL is required for amqp transport")
		}
		if c.AMQPExchange == "" || c.AMQPQueue == "" {
			return fmt.Errorf("AMQP exchange and queue are required for amqp transport")
		}

	case LogTransport:
		// Nothing to configure
	}

	return nil
}

// GetTransports returns all valid transports
func GetTransports() []Transport {
	return []Transport{SMTPTransport, AMQPTransport, LogTransport}
}

// GetTransportStrings returns all valid transport strings
func GetTransportStrings() []string {
	types := GetTransports()
	strings := make([]string, len(types))
	for i, t := range types {
		strings[i] = t.String()
	}
	return strings
}
