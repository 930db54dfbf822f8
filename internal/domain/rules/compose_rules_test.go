package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const services = `services:
  web:
    image: nginx:1.25.3
    restart: always
    mem_limit: 256m
  db:
    image: postgres
    privileged: true
    environment:
      POSTGRES_PASSWORD: hunter2
      POSTGRES_USER: app
      DB_TOKEN: ${DB_TOKEN}
  cache:
    image: redis:latest
    deploy:
      resources:
        limits:
          cpus: "0.5"
    environment:
      - REDIS_PASSWORD=${REDIS_PASSWORD}
      - apiKey=abc123
  ghost:
    ports:
      - "80:80"
  app:
    build: .
    restart: unless-stopped
    cpus: 1
`

func TestDC001_RestartPolicy(t *testing.T) {
	issues := evalCompose(t, "DC001", compose(t, services))
	require.Len(t, issues, 3)
	assert.Equal(t, []int{6, 13, 22}, lines(issues))
	assert.Equal(t, "db", issues[0].Context)
}

func TestDC002_Privileged(t *testing.T) {
	issues := evalCompose(t, "DC002", compose(t, services))
	require.Len(t, issues, 1)
	assert.Equal(t, "db", issues[0].Context)
	assert.Contains(t, issues[0].Message, "privileged mode")
}

func TestDC002_OncePerServiceRegardlessOfOtherFields(t *testing.T) {
	m := compose(t, "services:\n  a:\n    privileged: true\n  b:\n    image: x:latest\n    privileged: true\n    restart: always\n")
	assert.Equal(t, []int{2, 4}, lines(evalCompose(t, "DC002", m)))
}

func TestDC003_ResourceLimits(t *testing.T) {
	issues := evalCompose(t, "DC003", compose(t, services))
	require.Len(t, issues, 2)
	assert.Equal(t, "db", issues[0].Context)
	assert.Equal(t, "ghost", issues[1].Context)
}

func TestDC004_LatestTag(t *testing.T) {
	issues := evalCompose(t, "DC004", compose(t, services))
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Message, "without tag")
	assert.Equal(t, "postgres", issues[0].Context)
	assert.Contains(t, issues[1].Message, "':latest'")
	assert.Equal(t, "redis:latest", issues[1].Context)
}

func TestDC004_DigestPins(t *testing.T) {
	m := compose(t, "services:\n  a:\n    image: nginx@sha256:abc\n")
	assert.Empty(t, evalCompose(t, "DC004", m))
}

func TestDC005_HardcodedSecrets(t *testing.T) {
	issues := evalCompose(t, "DC005", compose(t, services))
	require.Len(t, issues, 2)
	assert.Equal(t, "POSTGRES_PASSWORD", issues[0].Context)
	assert.Equal(t, 6, issues[0].LineOrZero())
	assert.Equal(t, "apiKey", issues[1].Context)
	for _, iss := range issues {
		assert.NotContains(t, iss.Message, "hunter2")
		assert.NotContains(t, iss.Message, "abc123")
	}
}

func TestDC006_NoImageOrBuild(t *testing.T) {
	issues := evalCompose(t, "DC006", compose(t, services))
	require.Len(t, issues, 1)
	assert.Equal(t, "ghost", issues[0].Context)
	assert.Equal(t, 22, issues[0].LineOrZero())
}

func TestComposeRules_MergedDefaultsCount(t *testing.T) {
	m := compose(t, `x-common: &common
  restart: always
  mem_limit: 512m
x-image: &img nginx:1.25.3
services:
  web:
    <<: *common
    image: *img
  worker:
    <<: *common
    image: busybox:1.36
    restart: "no"
`)

	for _, id := range []string{"DC001", "DC003", "DC004"} {
		assert.Empty(t, evalCompose(t, id, m), id)
	}
	assert.Equal(t, "no", *m.Services["worker"].RestartPolicy)
}
