// Package task runs future viewing generation in the background.
//
// Requests are recorded as PENDING and handed to an Enqueuer, which pushes a
// Descriptor onto an in-process Queue. A single Worker pops descriptors in
// FIFO order, calls the image generator, stores the artifact and writes the
// terminal status. Queued descriptors do not survive a restart; the Queue is
// the seam for swapping in a durable broker without changing the Worker.
package task
