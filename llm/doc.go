// Package llm relays a chat conversation to a model hosted on AWS Bedrock.
//
// A Conversation is translated by a provider Adapter into the model's native
// InvokeModel body, sent once through a Client, and the first reply segment is
// returned as plain text. Failures are reported as *Error values whose Kind
// tells configuration, transport and provider problems apart.
package llm
