package server

import (
	"testing"

	"google.golang.org/grpc"
)

// mockServiceRegistrar records registered service names.
type mockServiceRegistrar struct {
	services []string
}

func (m *mockServiceRegistrar) RegisterService(desc *grpc.ServiceDesc, impl interface{}) {
	m.services = append(m.services, desc.ServiceName)
}

func TestRegisterServices_HealthRegistered(t *testing.T) {
	reg := &mockServiceRegistrar{}
	RegisterServices(reg, nil)
	if len(reg.services) != 1 || reg.services[0] != "grpc.health.v1.Health" {
		t.Errorf("registered services = %v, want [grpc.health.v1.Health]", reg.services)
	}
}
