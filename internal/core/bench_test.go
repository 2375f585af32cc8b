package core

import (
	"context"
	"testing"
)

func benchmarkChannelMessage(b *testing.B, members int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil, HubOptions{ClientBuffer: members + 16})
	go hub.Run(ctx)

	sender := hub.NewClient()
	hub.RegisterClient(sender)
	<-sender.Events
	sender.Commands <- CreateCommand{Channel: "bench"}
	<-sender.Events

	for i := 0; i < members; i++ {
		c := hub.NewClient()
		hub.RegisterClient(c)
		c.Commands <- JoinCommand{Channel: "bench"}
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}

	// Drain the NAMES events produced by the joins.
	for i := 0; i < members; i++ {
		<-sender.Events
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.Commands <- MessageCommand{Channel: "bench", Text: "payload"}
		<-sender.Events
	}
}

func BenchmarkChannelMessage_10(b *testing.B)  { benchmarkChannelMessage(b, 10) }
func BenchmarkChannelMessage_100(b *testing.B) { benchmarkChannelMessage(b, 100) }
func BenchmarkChannelMessage_500(b *testing.B) { benchmarkChannelMessage(b, 500) }

func BenchmarkModelApply(b *testing.B) {
	model := NewModel()
	for i := 0; i < 100; i++ {
		model.RegisterUser(ConnID(i))
	}
	NewCreateCommand(0, "User0", "bench", false).Apply(model)
	for i := 1; i < 100; i++ {
		NewJoinCommand(ConnID(i), "", "bench").Apply(model)
	}
	msg := NewMessageCommand(1, "User1", "bench", "payload")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		msg.Apply(model)
	}
}
