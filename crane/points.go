package crane

// GetPoints asks the poll worker for a fresh copy of the controller's point
// registry and waits for it.
//
// Before the worker runs it returns an empty registry. A refresh that fails
// leaves the cached registry untouched; that copy is returned with the error.
func (d *Driver) GetPoints() (Points, error) {
	if !d.Running() {
		return Points{}, nil
	}

	stopped := d.workerStopped()
	req := &refreshRequest{done: make(chan struct{})}

	select {
	case d.st.refreshReq <- req:
	case <-d.ctx.Done():
		return Points{}, ErrClosed
	case <-stopped:
		return Points{}, ErrNotRunning
	}

	select {
	case <-req.done:
		return req.points, req.err
	case <-d.ctx.Done():
		return Points{}, ErrClosed
	case <-stopped:
		return Points{}, ErrNotRunning
	}
}

// Points returns the registry from the last refresh without touching the link.
func (d *Driver) Points() Points {
	return d.st.getPoints()
}

// PointsGeneration counts completed point refreshes.
func (d *Driver) PointsGeneration() uint64 {
	return d.st.refreshGeneration()
}
