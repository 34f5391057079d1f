package model

// HealthStatus is the body of GET /api/health/.
type HealthStatus struct {
	Status string `json:"status"`
}

// Healthy reports whether the backend says it is healthy.
func (h HealthStatus) Healthy() bool {
	return h.Status == "ok"
}

// ReadinessStatus is the body of GET /api/ready/.
type ReadinessStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Ready reports whether the backend says it is ready.
func (r ReadinessStatus) Ready() bool {
	return r.Status == "ready"
}

// LogEntry is one request log record.
type LogEntry struct {
	User     *string `json:"user"`
	ID       string  `json:"_id"`
	Endpoint string  `json:"endpoint"`
	Method   string  `json:"method"`
	Date     string  `json:"date"`
	Status   int     `json:"status"`
}

// UserName returns the logged user or a dash for anonymous requests.
func (l LogEntry) UserName() string {
	if l.User == nil || *l.User == "" {
		return "-"
	}
	return *l.User
}

// LogsPage is one server-side page of request logs.
type LogsPage struct {
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []LogEntry `json:"results"`
	Count    int        `json:"count"`
}
