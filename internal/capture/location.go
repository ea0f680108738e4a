package capture

import (
	"context"
	"sync"

	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus"
)

// Method records how a coordinate was obtained.
type Method string

const (
	MethodDevice Method = "device"
	MethodAuto   Method = "auto"
	MethodMap    Method = "map"
)

func ParseMethod(v string) Method {
	switch Method(v) {
	case MethodDevice, MethodAuto:
		return Method(v)
	}
	return MethodMap
}

// GeoSource answers a single device location query.
type GeoSource interface {
	Locate(ctx context.Context) (types.Coordinate, error)
}

// GeoSourceFunc adapts a function to GeoSource.
type GeoSourceFunc func(ctx context.Context) (types.Coordinate, error)

func (f GeoSourceFunc) Locate(ctx context.Context) (types.Coordinate, error) {
	return f(ctx)
}

// Locator is a single coordinate slot. Every writer replaces the previous
// value; failed queries leave it untouched.
type Locator struct {
	logger logrus.FieldLogger

	mu          sync.Mutex
	coordinate  *types.Coordinate
	method      Method
	autoLocated bool
}

func NewLocator(logger logrus.FieldLogger) *Locator {
	return &Locator{logger: logger}
}

// LocateDevice queries source once. Errors are logged and absorbed.
func (l *Locator) LocateDevice(ctx context.Context, source GeoSource) {
	l.locate(ctx, source, MethodDevice)
}

// AutoLocate queries source the first time it is called and does nothing on
// later calls.
func (l *Locator) AutoLocate(ctx context.Context, source GeoSource) {
	l.mu.Lock()
	if l.autoLocated {
		l.mu.Unlock()
		return
	}
	l.autoLocated = true
	l.mu.Unlock()

	l.locate(ctx, source, MethodAuto)
}

// Select records a point the user indicated on the map.
func (l *Locator) Select(coord types.Coordinate) bool {
	return l.set(coord, MethodMap)
}

// Coordinate returns a copy of the current coordinate.
func (l *Locator) Coordinate() (types.Coordinate, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.coordinate == nil {
		return types.Coordinate{}, false
	}
	return *l.coordinate, true
}

// Method returns how the current coordinate was obtained.
func (l *Locator) Method() Method {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.method
}

func (l *Locator) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.coordinate = nil
	l.method = ""
}

func (l *Locator) locate(ctx context.Context, source GeoSource, method Method) {
	coord, err := source.Locate(ctx)
	if err != nil {
		l.logger.WithError(err).WithField("method", method).Warn(types.ErrLocationUnavailable.Error())
		return
	}

	l.set(coord, method)
}

func (l *Locator) set(coord types.Coordinate, method Method) bool {
	if !coord.Valid() {
		l.logger.WithFields(logrus.Fields{
			"method":    method,
			"latitude":  coord.Latitude,
			"longitude": coord.Longitude,
		}).Warn("ignoring out of range coordinate")
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.coordinate = &coord
	l.method = method
	return true
}
