package queue

import (
	"testing"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
)

func TestQueueNames(t *testing.T) {
	work := WorkQueueNames()
	if len(work) != 1 || work[0] != "alerts" {
		t.Fatalf("WorkQueueNames = %v, want [alerts]", work)
	}

	if got := DLQName(AlertsQueue); got != "dlq.alerts" {
		t.Fatalf("DLQName = %s, want dlq.alerts", got)
	}
}

func TestWorkQueueArgs(t *testing.T) {
	args := workQueueArgs(AlertsQueue)

	if args["x-dead-letter-exchange"] != "emergency.dlx" {
		t.Fatalf("x-dead-letter-exchange = %v, want emergency.dlx", args["x-dead-letter-exchange"])
	}
	if args["x-dead-letter-routing-key"] != AlertsQueue {
		t.Fatalf("x-dead-letter-routing-key = %v, want %s", args["x-dead-letter-routing-key"], AlertsQueue)
	}
	if args["x-max-priority"] != queueMaxPriority {
		t.Fatalf("x-max-priority = %v, want %d", args["x-max-priority"], queueMaxPriority)
	}
}

func TestPriorityValue(t *testing.T) {
	tests := []struct {
		name    string
		urgency domain.Urgency
		want    uint8
	}{
		{name: "critical", urgency: domain.UrgencyCritical, want: 4},
		{name: "high", urgency: domain.UrgencyHigh, want: 3},
		{name: "medium", urgency: domain.UrgencyMedium, want: 2},
		{name: "low", urgency: domain.UrgencyLow, want: 1},
		{name: "invalid", urgency: domain.Urgency("invalid"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriorityValue(tt.urgency)
			if got != tt.want {
				t.Fatalf("PriorityValue(%q) = %d, want %d", tt.urgency, got, tt.want)
			}
		})
	}
}

func TestAlertMessageValidate(t *testing.T) {
	msg := AlertMessage{
		CallID:   "c1",
		CallerID: "u1",
		Urgency:  domain.UrgencyHigh,
	}
	if err := msg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	msg.CallID = ""
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for empty call id")
	}

	msg.CallID = "c1"
	msg.CallerID = " "
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for empty caller id")
	}

	msg.CallerID = "u1"
	msg.Urgency = domain.Urgency("apocalyptic")
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for invalid urgency")
	}

	msg.Urgency = ""
	if err := msg.Validate(); err != nil {
		t.Fatalf("urgency is optional, got %v", err)
	}
}
