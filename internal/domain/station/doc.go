// Package station defines the station aggregate and the entities it owns.
//
// A Station owns mounts, HLS streams, remotes and playlists. Changes to those owned
// entities can require the station's streaming backend to be restarted; the Owned
// interface and the Significance table describe which changes matter.
package station
