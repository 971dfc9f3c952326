package entity

import (
	"fmt"

	"github.com/samber/lo"
)

// Channel is the delivery channel an identity signs in over.
type Channel string

const (
	// ChannelEmail delivers codes to an email address.
	ChannelEmail Channel = "email"
	// ChannelWhatsApp delivers codes to an E.164 phone number over WhatsApp.
	ChannelWhatsApp Channel = "whatsapp"
)

var channels = []Channel{ChannelEmail, ChannelWhatsApp}

// String returns the wire representation of the channel.
func (c Channel) String() string {
	return string(c)
}

// Valid reports whether the channel is one of the supported values.
func (c Channel) Valid() bool {
	return lo.Contains(channels, c)
}

// ParseChannel converts a wire value into a Channel.
func ParseChannel(s string) (Channel, error) {
	c := Channel(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown channel %q", s)
	}

	return c, nil
}

// ChannelNames lists the supported channel values.
func ChannelNames() []string {
	return lo.Map(channels, func(c Channel, _ int) string { return c.String() })
}
