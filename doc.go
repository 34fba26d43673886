// Package buildbar collects the latest build status of container images from
// several registries and renders a compact summary for a menu-bar status
// plugin.
//
// A run fetches every configured [Monitor] concurrently, parses each response
// with the monitor's [Parser], and renders the results in the order the
// monitors were configured. If any monitor fails to fetch or parse, the
// whole run fails and only the error is shown, so the menu bar never shows
// a half-updated view.
//
// # Quick Start
//
//	hub, _ := buildbar.NewMonitor(
//	    "https://hub.docker.com/v2/repositories/myorg/myimage/buildhistory/",
//	    buildbar.DockerHub,
//	    buildbar.WithWebURL("https://hub.docker.com/r/myorg/myimage/builds/"),
//	)
//	bb, _ := buildbar.New(buildbar.WithMonitor(hub))
//
//	if err := bb.Run(context.Background(), os.Stdout); err != nil {
//	    slog.Error("collection failed", "error", err)
//	}
//
// # Parsers
//
// Two parsers are built in:
//
//   - [DockerHub]: the Docker Hub build history API; the last result is the latest build
//   - [Quay]: the Quay.io build API; the first build is the latest
//
// Other registries are supported by implementing [Parser] and registering
// it with [RegisterParser] so the config package can refer to it by name.
//
// # Statuses
//
// Parsers map what they can onto the six [CanonicalStatus] values. Anything
// else is kept as a raw [Status] so it can still be displayed; [Appearance]
// shows raw values with the unknown icon in white.
//
// # Output
//
// [Render] produces the plugin text: a title line of icons, a "---" line,
// and two lines per monitor carrying the name, start time, link, colour and
// raw status.
package buildbar
