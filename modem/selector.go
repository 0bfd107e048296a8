package modem

import (
	"fmt"
	"sync"
)

// Kind names which radio family carries the sockets.
type Kind int

const (
	KindNone Kind = iota
	KindCellular
	KindWifi
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindCellular:
		return "cellular"
	case KindWifi:
		return "wifi"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind maps "cellular", "wifi" and "none" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "cellular":
		return KindCellular, nil
	case "wifi":
		return KindWifi, nil
	case "none", "":
		return KindNone, nil
	default:
		return KindNone, fmt.Errorf("unknown radio kind %q", s)
	}
}

// Selector hands out the IP stack of the active radio family. Either stack
// may be nil when that family is not fitted.
type Selector struct {
	mu     sync.RWMutex
	stacks map[Kind]IPStack
	kind   Kind
}

func NewSelector(cellular, wifi IPStack) *Selector {
	s := &Selector{stacks: make(map[Kind]IPStack, 2)}
	if cellular != nil {
		s.stacks[KindCellular] = cellular
	}
	if wifi != nil {
		s.stacks[KindWifi] = wifi
	}
	return s
}

// SetKind makes kind the active family. KindNone deactivates both.
func (s *Selector) SetKind(kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind != KindNone {
		if _, ok := s.stacks[kind]; !ok {
			return fmt.Errorf("%w: %s", ErrNoStack, kind)
		}
	}
	s.kind = kind
	return nil
}

func (s *Selector) Kind() Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kind
}

// Active returns the active stack, or nil for KindNone.
func (s *Selector) Active() IPStack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.kind == KindNone {
		return nil
	}
	return s.stacks[s.kind]
}
