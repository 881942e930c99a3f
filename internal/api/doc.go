// Package api exposes the future viewing and screen services over HTTP.
package api
