package chatify

// Dispatcher routes store changes and connection events to registered
// callbacks. Callbacks fire after the store mutation has fully landed,
// so a handler reading Snapshot always sees the applied state.
type Dispatcher struct {
	onCreated      func(Message)
	onEdited       func(Message)
	onDeleted      func(roomID, messageID string)
	onStateChanged func(StateEvent)
	onError        func(error)
}

func (d *Dispatcher) SetOnCreated(fn func(Message))              { d.onCreated = fn }
func (d *Dispatcher) SetOnEdited(fn func(Message))               { d.onEdited = fn }
func (d *Dispatcher) SetOnDeleted(fn func(roomID, msgID string)) { d.onDeleted = fn }
func (d *Dispatcher) SetOnStateChanged(fn func(StateEvent))      { d.onStateChanged = fn }
func (d *Dispatcher) SetOnError(fn func(error))                  { d.onError = fn }

func (d *Dispatcher) fireCreated(m Message) {
	if d.onCreated != nil {
		d.onCreated(m)
	}
}

func (d *Dispatcher) fireEdited(m Message) {
	if d.onEdited != nil {
		d.onEdited(m)
	}
}

func (d *Dispatcher) fireDeleted(roomID, messageID string) {
	if d.onDeleted != nil {
		d.onDeleted(roomID, messageID)
	}
}

func (d *Dispatcher) fireStateChanged(ev StateEvent) {
	if d.onStateChanged != nil {
		d.onStateChanged(ev)
	}
}

func (d *Dispatcher) fireError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}
