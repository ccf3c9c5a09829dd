package services

import (
	"testing"

	"matchcall/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouteTableRejectsBadPaths(t *testing.T) {
	cases := []RoutePaths{
		{Call: "", Schedule: "/schedule", Leave: "/"},
		{Call: "call", Schedule: "/schedule", Leave: "/"},
		{Call: "/call", Schedule: "/schedule?x=1", Leave: "/"},
		{Call: "/call", Schedule: "/schedule", Leave: ""},
	}
	for _, c := range cases {
		_, err := NewRouteTable(c)
		assert.ErrorIs(t, err, ErrConfiguration, "%+v", c)
	}
}

func TestDestinations(t *testing.T) {
	routes, err := NewRouteTable(RoutePaths{Call: "/call/", Schedule: "/schedule", Leave: "/dashboard"})
	require.NoError(t, err)

	call := routes.CallDestination("m1", "b2b")
	assert.Equal(t, models.NavigationEvent{
		Kind:    models.NavigateCall,
		Path:    "/call/m1",
		Query:   map[string]string{"type": "b2b"},
		Address: "/call/m1?type=b2b",
	}, call)

	sched := routes.ScheduleDestination("user/2", "investment")
	assert.Equal(t, "/schedule/user%2F2", sched.Path)
	assert.Equal(t, "/schedule/user%2F2?type=investment", sched.Address)

	leave := routes.LeaveDestination()
	assert.Equal(t, "/dashboard", leave.Address)
	assert.Nil(t, leave.Query)
}
