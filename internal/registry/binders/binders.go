// Package binders implements the concrete BinderStrategy
// implementations the resolver invokes to wire a source component's
// bind request to a target component's exposed capability: the
// consumer gets environment variables injected and an access grant
// plus network-reachability requirement recorded, never a live cloud
// call.
package binders

import (
	"fmt"

	"github.com/platformforge/svc/internal/capability"
	"github.com/platformforge/svc/internal/registry/components"
)

// envVar returns the canonical injected variable name: {PREFIX}_{SUFFIX}.
func envVar(sourceName, suffix string) string {
	return fmt.Sprintf("%s_%s", components.EnvPrefix(sourceName), suffix)
}

// genericBinder implements BinderStrategy for a single (sourceType,
// capability) pair using a declarative field-to-suffix map, avoiding
// a near-identical hand-written Bind method per pair.
type genericBinder struct {
	sourceType      string
	capability      string
	supportedAccess []capability.AccessLevel
	fieldSuffixes   map[string]string // capability data field -> injected env var suffix
	networkReqs     []string
}

func (b genericBinder) SourceType() string                      { return b.sourceType }
func (b genericBinder) Capability() string                      { return b.capability }
func (b genericBinder) SupportedAccess() []capability.AccessLevel { return b.supportedAccess }

func (b genericBinder) CanHandle(sourceType, cap string, access capability.AccessLevel) bool {
	if sourceType != b.sourceType || cap != b.capability {
		return false
	}
	for _, a := range b.supportedAccess {
		if a == access {
			return true
		}
	}
	return false
}

// fieldEnvVarNames inverts ctx.EnvAliases (envVarName -> capabilityField,
// BindingRequest.env) into capabilityField ->
// envVarName, so an explicit binds[].env entry can name the exact
// variable a capability field lands in, bypassing the default
// {PREFIX}_{SUFFIX} convention.
func fieldEnvVarNames(aliases map[string]string) map[string]string {
	out := make(map[string]string, len(aliases))
	for envName, field := range aliases {
		out[field] = envName
	}
	return out
}

func (b genericBinder) Bind(ctx capability.BindingContext) (capability.BindingResult, error) {
	aliasForField := fieldEnvVarNames(ctx.EnvAliases)

	envVars := map[string]string{}
	for field, suffix := range b.fieldSuffixes {
		v, ok := ctx.CapabilityData[field]
		if !ok {
			continue
		}
		name := envVar(ctx.SourceName, suffix)
		if alias, ok := aliasForField[field]; ok {
			name = alias
		}
		envVars[name] = fmt.Sprintf("%v", v)
	}

	grants := []string{fmt.Sprintf("%s:%s grants %s access to %s", ctx.SourceType, ctx.TargetType, ctx.Access, ctx.TargetName)}

	var constraints []string
	if ctx.Framework == "fedramp-moderate" || ctx.Framework == "fedramp-high" {
		constraints = append(constraints, "encryption-in-transit-required")
	}

	return capability.BindingResult{
		EnvVars:             envVars,
		AccessGrants:        grants,
		NetworkRequirements: append([]string{}, b.networkReqs...),
		PostBindConstraints: constraints,
	}, nil
}

func (b genericBinder) Compatibility() []capability.CompatibilityEntry {
	return []capability.CompatibilityEntry{{SourceType: b.sourceType, Capability: b.capability, Access: b.supportedAccess}}
}

// RegisterAll wires every (sourceType, capability) pair this platform
// supports into cap. Called once at process start.
func RegisterAll(cap *capability.Registry) {
	rw := []capability.AccessLevel{capability.AccessRead, capability.AccessWrite, capability.AccessReadWrite, capability.AccessAdmin}
	pubSub := []capability.AccessLevel{capability.AccessPublish, capability.AccessConsume}
	rwOnly := []capability.AccessLevel{capability.AccessRead, capability.AccessWrite, capability.AccessReadWrite}

	dbFields := map[string]string{"host": "HOST", "port": "PORT", "dbName": "DB_NAME", "secretArn": "SECRET_ARN"}
	queueFields := map[string]string{"queueUrl": "QUEUE_URL", "queueArn": "QUEUE_ARN"}
	bucketFields := map[string]string{"bucketName": "BUCKET_NAME", "bucketArn": "BUCKET_ARN", "region": "REGION"}
	cacheFields := map[string]string{"endpoint": "CACHE_ENDPOINT", "port": "CACHE_PORT"}
	apiFields := map[string]string{"endpointUrl": "UPSTREAM_URL"}

	sharedSG := []string{"shared-security-group"}

	sources := []string{"lambda-api", "worker", "rest-api-gateway"}
	for _, src := range sources {
		cap.RegisterBinder(genericBinder{sourceType: src, capability: "db:postgres", supportedAccess: rw, fieldSuffixes: dbFields, networkReqs: sharedSG})
		cap.RegisterBinder(genericBinder{sourceType: src, capability: "bucket:s3", supportedAccess: rwOnly, fieldSuffixes: bucketFields})
		cap.RegisterBinder(genericBinder{sourceType: src, capability: "cache:redis", supportedAccess: rwOnly, fieldSuffixes: cacheFields, networkReqs: sharedSG})
		cap.RegisterBinder(genericBinder{sourceType: src, capability: "api:rest", supportedAccess: []capability.AccessLevel{capability.AccessRead, capability.AccessExecute}, fieldSuffixes: apiFields})
	}

	cap.RegisterBinder(genericBinder{sourceType: "lambda-api", capability: "queue:sqs", supportedAccess: pubSub, fieldSuffixes: queueFields})
	cap.RegisterBinder(genericBinder{sourceType: "worker", capability: "queue:sqs", supportedAccess: pubSub, fieldSuffixes: queueFields})

	for _, src := range []string{"rds-postgres", "redis-cache", "lambda-api", "worker", "s3-bucket", "sqs-queue"} {
		cap.RegisterBinder(genericBinder{sourceType: src, capability: "net:vpc", supportedAccess: []capability.AccessLevel{capability.AccessRead}, fieldSuffixes: map[string]string{"securityGroupId": "VPC_SECURITY_GROUP_ID", "vpcId": "VPC_ID"}, networkReqs: sharedSG})
	}
}
