package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "partysync_active_rooms",
		Help: "Rooms currently registered on the relay.",
	})

	RelayedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partysync_relayed_frames_total",
		Help: "Frames fanned out to room members.",
	})

	DroppedMembers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partysync_dropped_members_total",
		Help: "Members disconnected for not keeping up with broadcasts.",
	})
)
