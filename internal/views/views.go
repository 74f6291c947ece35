// Package views computes UI-facing state from a fleet snapshot. Everything
// here is a pure function: no caching, recomputable at any time, never able
// to drift from the store it derives from.
package views

import "github.com/ukydev/eco-monitor/internal/models"

// NotificationCount counts locations whose status is full.
func NotificationCount(locations []models.Location) int {
	count := 0
	for _, loc := range locations {
		if loc.Status == models.StatusFull {
			count++
		}
	}
	return count
}

// Partition groups locations into the three status buckets for side-by-side
// display.
type Partition struct {
	Full    []models.Location
	Partial []models.Location
	Empty   []models.Location
}

// PartitionByStatus buckets the locations by status.
func PartitionByStatus(locations []models.Location) Partition {
	var p Partition
	for _, loc := range locations {
		switch loc.Status {
		case models.StatusFull:
			p.Full = append(p.Full, loc)
		case models.StatusPartial:
			p.Partial = append(p.Partial, loc)
		default:
			p.Empty = append(p.Empty, loc)
		}
	}
	return p
}

// Point is a map coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// MapCenter returns the arithmetic mean of all location coordinates, used
// when no specific location is targeted. ok is false for an empty fleet.
func MapCenter(locations []models.Location) (center Point, ok bool) {
	if len(locations) == 0 {
		return Point{}, false
	}
	var sumLat, sumLng float64
	for _, loc := range locations {
		sumLat += loc.Lat
		sumLng += loc.Lng
	}
	n := float64(len(locations))
	return Point{Lat: sumLat / n, Lng: sumLng / n}, true
}

// FlyTarget returns the coordinates of the selected location when present,
// falling back to the fleet center.
func FlyTarget(locations []models.Location, selectedID string) (Point, bool) {
	for _, loc := range locations {
		if loc.ID == selectedID {
			return Point{Lat: loc.Lat, Lng: loc.Lng}, true
		}
	}
	return MapCenter(locations)
}

// ReportSummary aggregates container-level figures for the reports page.
type ReportSummary struct {
	TotalContainers int     `json:"total_containers"`
	FullContainers  int     `json:"full_containers"`
	EmptyContainers int     `json:"empty_containers"`
	AverageFillRate float64 `json:"average_fill_rate"`
}

// Summarize computes the report summary over all containers in the fleet.
func Summarize(locations []models.Location) ReportSummary {
	var s ReportSummary
	var fillSum float64
	for _, loc := range locations {
		for _, c := range loc.Containers {
			s.TotalContainers++
			fillSum += c.FillLevel
			switch c.Status {
			case models.StatusFull:
				s.FullContainers++
			case models.StatusEmpty:
				s.EmptyContainers++
			}
		}
	}
	if s.TotalContainers > 0 {
		s.AverageFillRate = fillSum / float64(s.TotalContainers)
	}
	return s
}
