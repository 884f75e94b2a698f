package connpool

import (
	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/DENNIS-CODES/nox/pkg/particle"
	"github.com/DENNIS-CODES/nox/pkg/peerid"
)

// command is a request arriving on the pool's command channel, carrying
// its own reply channel so the driver can answer it synchronously from
// inside the select loop.
type command interface {
	isCommand()
}

type dialCommand struct {
	addr  maddr.Addr
	reply chan *Contact
}

func (dialCommand) isCommand() {}

type connectCommand struct {
	contact Contact
	reply   chan bool
}

func (connectCommand) isCommand() {}

type disconnectCommand struct {
	peer  peerid.ID
	reply chan bool
}

func (disconnectCommand) isCommand() {}

type isConnectedCommand struct {
	peer  peerid.ID
	reply chan bool
}

func (isConnectedCommand) isCommand() {}

type getContactCommand struct {
	peer  peerid.ID
	reply chan *Contact
}

func (getContactCommand) isCommand() {}

type sendCommand struct {
	to       Contact
	particle particle.Extended
	reply    chan particle.SendStatus
}

func (sendCommand) isCommand() {}

type countConnectionsCommand struct {
	reply chan int
}

func (countConnectionsCommand) isCommand() {}

type subscribeCommand struct {
	reply chan chan LifecycleEvent
}

func (subscribeCommand) isCommand() {}

type unsubscribeCommand struct {
	ch chan LifecycleEvent
}

func (unsubscribeCommand) isCommand() {}
