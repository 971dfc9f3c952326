package delivery

import (
	"context"
	"fmt"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/entity"
)

// Sender hands an issued code to its delivery channel.
type Sender interface {
	// Send delivers code to identity over channel.
	Send(ctx context.Context, identity, code string, channel entity.Channel) error
}

// ChannelSender delivers over exactly one channel.
type ChannelSender interface {
	Send(ctx context.Context, identity, code string) error
}

// Dispatcher routes a send to the sender registered for the channel.
type Dispatcher struct {
	email    ChannelSender
	whatsapp ChannelSender
}

// NewDispatcher wires one sender per supported channel.
func NewDispatcher(email, whatsapp ChannelSender) *Dispatcher {
	return &Dispatcher{email: email, whatsapp: whatsapp}
}

func (d *Dispatcher) Send(ctx context.Context, identity, code string, channel entity.Channel) error {
	switch channel {
	case entity.ChannelEmail:
		return d.email.Send(ctx, identity, code)
	case entity.ChannelWhatsApp:
		return d.whatsapp.Send(ctx, identity, code)
	default:
		return fmt.Errorf("no sender for channel %q", channel)
	}
}
