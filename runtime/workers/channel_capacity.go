package workers

import (
	"context"
	"groupchat/contract"
	"log/slog"
	"reflect"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// ChannelCapacityWorker periodically samples the length and capacity of channels
// and warns when one is about to fill up, since a full event bus drops events.
// Reading len(channel) and cap(channel) never blocks the other goroutines.
type ChannelCapacityWorker struct {
	name                 contract.WorkerName
	log                  *slog.Logger
	channels             []NamedChannel
	metricInterval       time.Duration
	lowCapacityThreshold int
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	metricInterval time.Duration, lowCapacityThreshold int) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		name:                 "channel-capacity",
		log:                  log,
		channels:             channels,
		metricInterval:       metricInterval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

func (w *ChannelCapacityWorker) GetName() contract.WorkerName { return w.name }

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping capacity sampling")
			return nil
		case <-ticker.C:
			for _, nc := range w.channels {
				w.sample(nc)
			}
		}
	}
}

// sample reports whether the channel is running low on capacity.
func (w *ChannelCapacityWorker) sample(nc NamedChannel) bool {
	v := reflect.ValueOf(nc.Channel)
	if v.Kind() != reflect.Chan {
		w.log.Error("Provided object is not a channel", "name", nc.Name)
		return false
	}
	capacity, length := v.Cap(), v.Len()
	w.log.Debug("Channel usage", "name", nc.Name, "length", length, "capacity", capacity)
	if capacity <= 0 {
		// Unbuffered
		return false
	}
	capacityLeft := capacity - length
	if capacityLeft <= w.lowCapacityThreshold {
		w.log.Warn("Channel close to saturation", "name", nc.Name, "capacity_left", capacityLeft)
		return true
	}
	return false
}
