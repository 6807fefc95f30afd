package publish

// Publisher delivers a finished staffing plan to the forecast consumer.
// The core produces the values; rendering stays on the consumer side.
type Publisher interface {
	PublishPlan(runID string, payload []byte) error
	Close()
}

// NopPublisher discards plans.
type NopPublisher struct{}

// PublishPlan implements Publisher.
func (NopPublisher) PublishPlan(string, []byte) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() {}

// MockPublisher records plans for tests.
type MockPublisher struct {
	Plans  map[string][]byte
	Fail   bool
	Closed bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Plans: make(map[string][]byte)}
}

// PublishPlan stores the payload or fails if configured to.
func (m *MockPublisher) PublishPlan(runID string, payload []byte) error {
	if m.Fail {
		return errPublishFailed
	}
	m.Plans[runID] = append([]byte(nil), payload...)
	return nil
}

// Close marks the publisher closed.
func (m *MockPublisher) Close() { m.Closed = true }
