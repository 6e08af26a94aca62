/*
Copyright (c) 2025 Mike Lane

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package cleanup provides age-based removal of abandoned workspaces.
//
// Workspaces are removed by the scope that created them. A process that is
// killed mid-handler leaves its directory behind, so this package runs a
// background scheduler that periodically scans the workspace root and deletes
// directories that belong to a known handler prefix and are older than a
// configured maximum age.
//
// Matching Rules:
//
// A directory is a candidate when its name is "<prefix>-<suffix>" for one of
// the configured prefixes. Regular files and directories with other names are
// never touched, so the root may be shared with unrelated data. A scheduler
// given an ActiveSet through SkipActive also leaves directories alone while a
// handler still holds them, however long that takes.
//
// Example usage:
//
//	scheduler := cleanup.NewScheduler(
//		"/var/lib/commandbot",
//		[]string{"breaking-changes", "update-counter-file"},
//		time.Hour,        // remove workspaces older than an hour
//		10*time.Minute,   // check every 10 minutes
//	)
//	if err := scheduler.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package cleanup
