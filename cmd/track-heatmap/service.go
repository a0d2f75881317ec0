// track-heatmap - accumulate heatmaps of moving and stationary objects
//  Copyright (C) 2018, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"

	"github.com/godbus/dbus"
	"github.com/godbus/dbus/introspect"

	"github.com/TheCacophonyProject/track-heatmap/throttle"
)

const (
	dbusName = "org.cacophony.trackheatmap"
	dbusPath = "/org/cacophony/trackheatmap"
)

type service struct {
	ctx       context.Context
	generator throttle.Generator
}

func startService(ctx context.Context, generator throttle.Generator) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return err
	}
	reply, err := conn.RequestName(dbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errors.New("name already taken")
	}

	s := &service{
		ctx:       ctx,
		generator: generator,
	}
	conn.Export(s, dbusPath, dbusName)
	conn.Export(genIntrospectable(s), dbusPath, "org.freedesktop.DBus.Introspectable")

	return nil
}

func genIntrospectable(v interface{}) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{{
			Name:    dbusName,
			Methods: introspect.Methods(v),
		}},
	}
	return introspect.NewIntrospectable(node)
}

// Generate takes a new snapshot and rebuilds the heatmap from all of the
// metadata. It returns a one line summary of the result.
func (s *service) Generate() (string, *dbus.Error) {
	res, err := s.generator.Generate(s.ctx)
	if err != nil {
		return "", &dbus.Error{
			Name: dbusName + ".Generate",
			Body: []interface{}{err.Error()},
		}
	}
	return res.Summary(), nil
}
