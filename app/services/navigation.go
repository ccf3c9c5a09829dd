package services

import (
	"net/url"
	"strings"

	"matchcall/app/models"
)

// RoutePaths are the base addresses of the client views a session can end in
type RoutePaths struct {
	Call     string
	Schedule string
	Leave    string
}

// RouteTable maps finished transitions to navigation events
type RouteTable struct {
	paths RoutePaths
}

// NewRouteTable validates the configured addresses once, so destinations never fail later
func NewRouteTable(paths RoutePaths) (*RouteTable, error) {
	check := []struct {
		key  string
		path string
	}{
		{"CALL_PATH", paths.Call},
		{"SCHEDULE_PATH", paths.Schedule},
		{"DASHBOARD_PATH", paths.Leave},
	}
	for _, c := range check {
		switch {
		case c.path == "":
			return nil, &ConfigError{Key: c.key}
		case !strings.HasPrefix(c.path, "/"):
			return nil, &ConfigError{Key: c.key, Reason: "must be an absolute path"}
		case strings.ContainsAny(c.path, "?#"):
			return nil, &ConfigError{Key: c.key, Reason: "must not carry a query or fragment"}
		}
	}

	return &RouteTable{paths: RoutePaths{
		Call:     strings.TrimRight(paths.Call, "/"),
		Schedule: strings.TrimRight(paths.Schedule, "/"),
		Leave:    paths.Leave,
	}}, nil
}

// CallDestination is {callPath}/{matchId}?type={callType}
func (r *RouteTable) CallDestination(matchID, callType string) models.NavigationEvent {
	return parameterized(models.NavigateCall, r.paths.Call, matchID, callType)
}

// ScheduleDestination is {schedulePath}/{userId}?type={connectionType}
func (r *RouteTable) ScheduleDestination(userID, callType string) models.NavigationEvent {
	return parameterized(models.NavigateSchedule, r.paths.Schedule, userID, callType)
}

// LeaveDestination is the dashboard
func (r *RouteTable) LeaveDestination() models.NavigationEvent {
	return models.NavigationEvent{
		Kind:    models.NavigateLeave,
		Path:    r.paths.Leave,
		Address: r.paths.Leave,
	}
}

func parameterized(kind models.NavigationKind, base, id, callType string) models.NavigationEvent {
	path := base + "/" + url.PathEscape(id)
	query := url.Values{"type": {callType}}
	return models.NavigationEvent{
		Kind:    kind,
		Path:    path,
		Query:   map[string]string{"type": callType},
		Address: path + "?" + query.Encode(),
	}
}
