package apiclient

import "fmt"

// requestState tracks one logical request through 401 recovery.
//
//	normal -> refreshing -> retried | failed
//	normal -> retried (token already refreshed by another request)
//
// retried and failed are terminal, so a request is retried at most once.
type requestState int

const (
	stateNormal requestState = iota
	stateRefreshing
	stateRetried
	stateFailed
)

func (s requestState) String() string {
	switch s {
	case stateNormal:
		return "normal"
	case stateRefreshing:
		return "refreshing"
	case stateRetried:
		return "retried"
	case stateFailed:
		return "failed"
	}
	return fmt.Sprintf("requestState(%d)", int(s))
}

var transitions = map[requestState][]requestState{
	stateNormal:     {stateRefreshing, stateRetried},
	stateRefreshing: {stateRetried, stateFailed},
}

func (s requestState) canMoveTo(next requestState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// flight is a request in progress
type flight struct {
	req       *Request
	state     requestState
	sentToken string
}

func (f *flight) to(next requestState) {
	if !f.state.canMoveTo(next) {
		panic(fmt.Sprintf("apiclient: illegal request state transition %s -> %s", f.state, next))
	}
	f.state = next
}
