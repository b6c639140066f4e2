package domain

import (
	"fmt"
	"strings"
	"time"
)

// Channel is an alert delivery mechanism.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

func (c Channel) String() string { return string(c) }

func (c Channel) IsValid() bool {
	switch c {
	case ChannelSMS, ChannelWhatsApp, ChannelEmail:
		return true
	}
	return false
}

func ParseChannelFromString(s string) (Channel, error) {
	ch := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !ch.IsValid() {
		return "", fmt.Errorf("%w: invalid channel %q", ErrValidation, s)
	}
	return ch, nil
}

// Channels returns the channels in the order they are attempted per contact.
func Channels() []Channel {
	return []Channel{ChannelSMS, ChannelWhatsApp, ChannelEmail}
}

// ChannelTally counts delivery outcomes on one channel.
type ChannelTally struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Attempts is the number of deliveries tried on the channel.
func (t ChannelTally) Attempts() int { return t.Sent + t.Failed }

// DispatchResult aggregates one dispatch across channels.
type DispatchResult struct {
	SMS      ChannelTally `json:"sms"`
	WhatsApp ChannelTally `json:"whatsapp"`
	Email    ChannelTally `json:"email"`
}

// Record adds one outcome to the tally of the given channel.
func (r *DispatchResult) Record(channel Channel, sent bool) {
	tally := r.tally(channel)
	if tally == nil {
		return
	}
	if sent {
		tally.Sent++
	} else {
		tally.Failed++
	}
}

// Tally returns the counts recorded for a channel.
func (r DispatchResult) Tally(channel Channel) ChannelTally {
	if t := r.tally(channel); t != nil {
		return *t
	}
	return ChannelTally{}
}

func (r *DispatchResult) tally(channel Channel) *ChannelTally {
	switch channel {
	case ChannelSMS:
		return &r.SMS
	case ChannelWhatsApp:
		return &r.WhatsApp
	case ChannelEmail:
		return &r.Email
	}
	return nil
}

// DeliveryAttempt records one (contact, channel) delivery.
type DeliveryAttempt struct {
	ID                string
	CallID            string
	ContactID         string
	Channel           Channel
	Success           bool
	ProviderMessageID *string
	StatusCode        *int
	Error             *string
	CreatedAt         time.Time
}
