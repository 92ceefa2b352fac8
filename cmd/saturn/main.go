// Saturn is a drift and governance decision engine for ML model promotion.
//
// It ingests prediction samples, computes distribution drift and fairness
// disparity, aggregates them into a composite risk score, evaluates the
// active governance policy, and drives the model lifecycle state machine.
//
// Usage:
//
//	# Start the API server with default configuration
//	saturn run
//
//	# Start with a custom configuration file
//	saturn run --config /path/to/config.yaml
//
//	# Activate a policy from a YAML file
//	saturn policy activate --file policy.yaml
//
//	# Run a one-shot governance simulation for a model
//	saturn simulate --model <model-id>
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}
