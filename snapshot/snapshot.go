// Package snapshot serializes the world state to the JSON-lines wire
// format of spec §6 and drains a stream of snapshots to a writer.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"

	channerics "github.com/niceyeti/channerics/channels"

	"zebra/worldstate"
)

// Pedestrian is one pedestrian entry of the snapshot schema (spec §6).
type Pedestrian struct {
	ID          int64 `json:"id"`
	Location    int   `json:"location"`
	ArrivalTime int64 `json:"arrival_time"`
}

// Vehicle is one vehicle entry of the snapshot schema (spec §6).
type Vehicle struct {
	ID           int64   `json:"id"`
	Length       float64 `json:"length"`
	BufferZone   float64 `json:"buffer_zone"`
	Direction    string  `json:"direction"`
	Position     float64 `json:"position"`
	Speed        float64 `json:"speed"`
	Acceleration float64 `json:"acceleration"`
}

// Snapshot is one JSON line emitted after every kernel iteration.
type Snapshot struct {
	Timestamp   int64        `json:"timestamp"`
	Pedestrians []Pedestrian `json:"pedestrians"`
	Vehicles    []Vehicle    `json:"vehicles"`
}

// FromState converts the current world state to its wire snapshot,
// preserving FIFO insertion order per spec §6 ("Order within the arrays
// is the internal insertion order").
func FromState(s *worldstate.State) Snapshot {
	peds := make([]Pedestrian, len(s.Pedestrians))
	for i, p := range s.Pedestrians {
		peds[i] = Pedestrian{
			ID:          p.ID,
			Location:    p.CrossingID,
			ArrivalTime: p.Arrival.Millis(),
		}
	}

	vehicles := make([]Vehicle, len(s.Vehicles))
	for i, v := range s.Vehicles {
		vehicles[i] = Vehicle{
			ID:           v.ID,
			Length:       v.Length(),
			BufferZone:   v.Buffer(),
			Direction:    v.Direction.String(),
			Position:     v.Position,
			Speed:        v.Speed,
			Acceleration: v.Acceleration,
		}
	}

	return Snapshot{
		Timestamp:   s.Timestamp.Millis(),
		Pedestrians: peds,
		Vehicles:    vehicles,
	}
}

// Writer drains snapshots from a channel and writes one JSON line per
// snapshot to w, until the channel closes or done fires.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w (typically an *os.File opened at --outfile).
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Drain consumes snapshots from in until it closes or done fires,
// writing one compact JSON line per snapshot. It mirrors the teacher's
// "for item := range channerics.OrDone(done, source)" drain loop
// (server/fastview's view-model sinks), used here so a cooperative
// shutdown signal stops the writer without leaking the goroutine feeding
// it.
func (wr *Writer) Drain(done <-chan struct{}, in <-chan Snapshot) error {
	enc := json.NewEncoder(wr.w)
	for snap := range channerics.OrDone(done, in) {
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("snapshot: write: %w", err)
		}
	}
	return nil
}
