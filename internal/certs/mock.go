package certs

import "crypto/tls"

// MockManager is a Manager returning a fixed certificate or error.
type MockManager struct {
	Err          error
	Certificate  tls.Certificate
	GetCallCount int
}

// GetOrCreateCertificate implements Manager.
func (m *MockManager) GetOrCreateCertificate() (tls.Certificate, error) {
	m.GetCallCount++
	if m.Err != nil {
		return tls.Certificate{}, m.Err
	}
	return m.Certificate, nil
}
