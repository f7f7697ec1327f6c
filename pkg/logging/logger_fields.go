package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

// Domain fields

// Target is the candidate or chosen attacker target node.
func Target(nodeID string) Field {
	return String("target", nodeID)
}

func Budget(b float64) Field {
	return Float64("budget", b)
}

func Strategy(name string) Field {
	return String("strategy", name)
}

// Objective is a defender expected utility.
func Objective(v float64) Field {
	return Float64("objective", v)
}

// Outcome is a per-target LP status.
func Outcome(s string) Field {
	return String("outcome", s)
}

func Nodes(n int) Field {
	return Int("nodes", n)
}
