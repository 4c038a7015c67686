package fixture

import (
	"time"

	"github.com/studiowebux/apichain/internal/types"
)

// Config represents the fixture server configuration
type Config struct {
	Port    int     `json:"port" yaml:"port"`       // Server port (default: 3000, 0 picks a free port)
	Host    string  `json:"host" yaml:"host"`       // Server host (default: localhost)
	Delay   int     `json:"delay" yaml:"delay"`     // Delay applied to every response in milliseconds
	Faults  []Fault `json:"faults" yaml:"faults"`   // Forced failures and per-route delays
	Logging bool    `json:"logging" yaml:"logging"` // Keep a request log (default: true)
}

// Fault overrides the behavior of one route
type Fault struct {
	Method string `json:"method" yaml:"method"`                 // HTTP method (GET, POST)
	Path   string `json:"path" yaml:"path"`                     // URL path without query, e.g. /users
	Status int    `json:"status,omitempty" yaml:"status"`       // Forced status code, 0 keeps the normal response
	Delay  int    `json:"delay,omitempty" yaml:"delay"`         // Extra delay in milliseconds
	Body   string `json:"body,omitempty" yaml:"body,omitempty"` // Body sent with a forced status
}

// Dataset is the data the fixture serves
type Dataset struct {
	Users    []types.User    `json:"users" yaml:"users"`
	Posts    []types.Post    `json:"posts" yaml:"posts"`
	Comments []types.Comment `json:"comments" yaml:"comments"`
}

// RequestLog represents a logged request
type RequestLog struct {
	Seq       uint64            `json:"seq"` // increases by one per logged request, never reused
	Timestamp time.Time         `json:"timestamp"`
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Query     string            `json:"query,omitempty"`
	Headers   map[string]string `json:"headers"`
	Body      string            `json:"body"`
	Route     string            `json:"route"`
	Status    int               `json:"status"`
	Duration  time.Duration     `json:"duration"`
}
