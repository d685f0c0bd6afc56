package vecfuse

import "context"

// Health checks the database, the result cache and the embedder.
func (c *Client) Health(ctx context.Context) HealthStatus {
	return convertHealth(c.healthSvc.Check(ctx))
}
