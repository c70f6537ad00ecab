package engine

import "github.com/sirupsen/logrus"

// Option configures an Engine at construction time. The engine is a library
// component with no CLI or environment surface, so configuration is entirely
// in-process: callers compose Options rather than loading a file or reading
// the environment.
type Option func(*Engine)

// WithLogger overrides the engine's diagnostic logger. The default is
// logrus's standard logger.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithItemIndex enables the flipped item-keyed mirror indexes
// (ItemUserToReactionKey / ItemUserToReactionOnceKey) for typeName, so
// CountReceived, SumReceived and MeanReceived can scan a prefix instead of
// performing a full user-space scan.
//
// Enable this for every type a caller intends to query by item; it costs an
// extra write per React/Dereact call for that type.
func WithItemIndex(typeName string) Option {
	return func(e *Engine) {
		e.itemIndexed[typeName] = true
	}
}
