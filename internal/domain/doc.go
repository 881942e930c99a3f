// Package domain holds the future viewing job and the screen entities with
// their validation rules.
package domain
