// Package heatmapclient calls a running track-heatmap service over D-Bus.
package heatmapclient

import "github.com/godbus/dbus"

const (
	dbusPath   = "/org/cacophony/trackheatmap"
	dbusDest   = "org.cacophony.trackheatmap"
	methodBase = "org.cacophony.trackheatmap"
)

func getDbusObj() (dbus.BusObject, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	obj := conn.Object(dbusDest, dbusPath)
	return obj, nil
}

// Generate asks the service to take a snapshot and rebuild the heatmap.
// It returns the service's summary of the result.
func Generate() (string, error) {
	obj, err := getDbusObj()
	if err != nil {
		return "", err
	}
	var summary string
	err = obj.Call(methodBase+".Generate", 0).Store(&summary)
	return summary, err
}
