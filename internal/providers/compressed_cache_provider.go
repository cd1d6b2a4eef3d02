package providers

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
}

type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	return z.decoder.DecodeAll(val, nil)
}

func NewZstdCompressor() (CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}

// CompressedCacheProvider compresses values on the way in. A value that
// fails to decompress is reported as a miss.
type CompressedCacheProvider struct {
	inner      CacheProviderInterface
	compressor CompressorInterface
	logger     Logger
}

func NewCompressedCacheProvider(inner CacheProviderInterface, compressor CompressorInterface, logger Logger) *CompressedCacheProvider {
	return &CompressedCacheProvider{inner: inner, compressor: compressor, logger: logger}
}

func (c *CompressedCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if !ok {
		return nil, false
	}
	out, err := c.compressor.Decompress(val)
	if err != nil {
		c.logger.Warnf(TypeCache, "decompress %s: %s", key, err)
		return nil, false
	}
	return out, true
}

func (c *CompressedCacheProvider) Set(key string, value []byte) {
	out, err := c.compressor.Compress(value)
	if err != nil {
		c.logger.Warnf(TypeCache, "compress %s: %s", key, err)
		return
	}
	c.inner.Set(key, out)
}

func (c *CompressedCacheProvider) Del(key string) {
	c.inner.Del(key)
}

func (c *CompressedCacheProvider) Touch(key string) {
	c.inner.Touch(key)
}
