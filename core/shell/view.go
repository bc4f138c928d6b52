package shell

import (
	"fmt"

	"incidents-dashboard/core/aggregate"
)

type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabTable     Tab = "table"
)

func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabDashboard, TabTable:
		return Tab(s), nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

type KPIPane string

const (
	KPIFacility KPIPane = "facility"
	KPISecurity KPIPane = "security"
)

func ParseKPIPane(s string) (KPIPane, error) {
	switch KPIPane(s) {
	case KPIFacility, KPISecurity:
		return KPIPane(s), nil
	}
	return "", fmt.Errorf("unknown kpi pane %q", s)
}

// View is the navigation state of one device. Changing it never triggers a fetch.
type View struct {
	Tab    Tab                 `json:"tab"`
	KPI    KPIPane             `json:"kpi"`
	Search string              `json:"search"`
	Sort   aggregate.SortState `json:"sort"`
	// Modal is the incident whose evidence image is open, if any.
	Modal string `json:"modal,omitempty"`
}

func DefaultView() View {
	return View{Tab: TabDashboard, KPI: KPIFacility, Sort: aggregate.DefaultSort()}
}
