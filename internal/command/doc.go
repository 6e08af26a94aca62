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

// Package command dispatches pull request comments to command interceptors.
//
// An interceptor inspects every comment and acts only when the trimmed body
// equals its command. The registry fixes the interceptors and their order at
// startup; the dispatcher runs all of them for each event, one after another,
// and contains the failure of any single interceptor.
//
// Dispatch Rules:
//
//   - Comments outside pull requests are ignored
//   - Comments whose author login contains the bot name are ignored
//   - Interceptors run sequentially in registry order
//   - An error or panic in one interceptor is logged and reported as a pull
//     request comment; the remaining interceptors still run
//
// Example usage:
//
//	registry, err := command.NewRegistry(
//		command.Interceptor{Name: "ping", Intercept: ping},
//	)
//	if err != nil {
//		return err
//	}
//	dispatcher := command.NewDispatcher(registry, "commandbot")
//	result := dispatcher.Dispatch(ctx, event, githubClient, gitClient)
package command
