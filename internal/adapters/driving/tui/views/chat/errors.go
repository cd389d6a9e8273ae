package chat

import "errors"

// ErrNoAskService indicates that no ask service was provided.
var ErrNoAskService = errors.New("ask service is required")
