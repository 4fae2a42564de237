// Package messaging is a thin broker-agnostic layer over Kafka, NATS, NSQ
// and Google Pub/Sub. Modules publish and consume through the Messaging
// interface; the broker is picked by config, so swapping it is a deployment
// change, not a code change.
package messaging
