// Package policyfile loads governance policies from YAML files and,
// optionally, watches a policy file for changes, activating the updated
// thresholds when it is rewritten. This gives deployments a GitOps-style
// alternative to the policy API: the file on disk is the source of truth
// and activation is versioned through the store like any API activation.
package policyfile
