package actorutil

import (
	"github.com/asynkron/protoactor-go/actor"
)

type Stash struct {
	stash []StashedMessage
}

type StashedMessage struct {
	Msg    any
	Sender *actor.PID
}

func (stash *Stash) Stash(ctx actor.Context, msg any) {
	stash.stash = append(stash.stash, StashedMessage{
		Msg:    msg,
		Sender: ctx.Sender(),
	})
}

func (stash *Stash) Len() int {
	return len(stash.stash)
}

func (stash *Stash) UnstashAll(ctx actor.Context) {
	for _, elem := range stash.Drain() {
		ctx.RequestWithCustomSender(ctx.Self(), elem.Msg, elem.Sender)
	}
}

func (stash *Stash) UnstashOldest(ctx actor.Context) {
	if len(stash.stash) > 0 {
		first := stash.stash[0]
		ctx.RequestWithCustomSender(ctx.Self(), first.Msg, first.Sender)
		stash.stash = stash.stash[1:]
	}
}

// Drain empties the stash and hands the messages back in arrival order.
func (stash *Stash) Drain() []StashedMessage {
	elems := stash.stash
	stash.stash = nil
	return elems
}
