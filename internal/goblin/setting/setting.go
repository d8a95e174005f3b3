// Package setting defines the contract between application code and the
// Goblin controller, plus a ready-made queue-backed implementation for
// adapters that don't want to write their own measurement buffer.
package setting

// Option is a setting's application-facing option: just a subjective value.
// Burdens are inferred from measurements, not declared here.
type Option struct {
	Value float64
}

// Measurement is one burden sample for a setting's currently (or
// previously) selected option.
type Measurement struct {
	Choice int
	Burden float64
	Valid  bool
}

// Setting is the interface the Goblin controller drives every tick.
type Setting interface {
	// Options returns an immutable view of the setting's options. The
	// length is fixed for the setting's lifetime.
	Options() []Option
	// ChoiceDefault returns the option to force when no burden data exists
	// yet for this setting.
	ChoiceDefault() int
	// ID returns a stable identifier: no double quote, no newline.
	ID() string
	// Measurement returns and removes the next queued measurement. The
	// returned value's Valid field is false once the queue is drained.
	Measurement() Measurement
	// ChoiceSet is called by the controller after every Update with the
	// chosen option index. strategy is reserved for future selection
	// strategies and is currently always 0.
	ChoiceSet(choice int, strategy int)
}

// Basic is a minimal Setting implementation backed by an in-memory
// measurement queue, for adapters that only need to expose a fixed option
// array and drain enqueued samples; the measurement queue is part of a
// Setting implementation, not the core controller.
type Basic struct {
	id      string
	options []Option
	def     int
	choice  int
	queue   []Measurement
}

// NewBasic returns a Basic setting with the given id, options, and default
// choice.
func NewBasic(id string, options []Option, defaultChoice int) *Basic {
	return &Basic{id: id, options: options, def: defaultChoice, choice: defaultChoice}
}

func (b *Basic) Options() []Option  { return b.options }
func (b *Basic) ChoiceDefault() int { return b.def }
func (b *Basic) ID() string         { return b.id }

// Enqueue appends a measurement to the queue, to be drained on the next
// controller tick.
func (b *Basic) Enqueue(choice int, burden float64) {
	b.queue = append(b.queue, Measurement{Choice: choice, Burden: burden, Valid: true})
}

func (b *Basic) Measurement() Measurement {
	if len(b.queue) == 0 {
		return Measurement{}
	}
	m := b.queue[0]
	b.queue = b.queue[1:]
	return m
}

func (b *Basic) ChoiceSet(choice int, _ int) {
	b.choice = choice
}

// Choice returns the option index most recently applied by the controller.
func (b *Basic) Choice() int { return b.choice }
