/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called buckets.
Each bucket contains only one type of object, addressed by its key. Buckets
operate on yieldshift.Model values that know how to validate and serialize
themselves.
*/
package orm
