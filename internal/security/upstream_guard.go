// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// UpstreamGuard は外部サービスへのアウトバウンドHTTP呼び出しのSSRF防止を提供する。
// BFFが代理で呼び出すクリエイティブAPIのベースURLは設定由来だが、
// 設定ミスや侵害された設定経路からの内部ネットワーク到達を防ぐため、
// 事前検証とDialerレベルのIP検証の両方を通す。
type UpstreamGuard struct{}

// NewUpstreamGuard はUpstreamGuardを生成する。
func NewUpstreamGuard() *UpstreamGuard {
	return &UpstreamGuard{}
}

// allowedSchemes はアウトバウンド呼び出しで許可されるURLスキーム。
var allowedSchemes = []string{"http", "https"}

// blockedNetworks はブロックされるネットワーク範囲。
// パッケージ初期化時に1回だけパースする。
// safeurlはnet.DialerレベルでDNS解決後のIPアドレスも検証するため、
// DNS再バインディング攻撃にも対応している。
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		// プライベートIPアドレス (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// ループバック (RFC 1122)
		"127.0.0.0/8",
		// リンクローカル (RFC 3927) - クラウドメタデータIP (169.254.169.254) を含む
		"169.254.0.0/16",
		// カレントネットワーク
		"0.0.0.0/8",
		// IPv6ループバック
		"::1/128",
		// IPv6リンクローカル
		"fe80::/10",
		// IPv6ユニークローカル
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
// safeurlがnet.DialerのControlフックでDNS解決後のIPアドレスを検証するため、
// プライベートIP・ループバック・リンクローカル・メタデータIPへの到達が
// リクエスト時点でブロックされる。
func (g *UpstreamGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateBaseURL は設定されたアップストリームのベースURLを起動時に静的検証する。
// スキーム・ホストの妥当性とブロック対象IP・ホスト名との照合を行う。
// DNS解決を伴わないため、解決後の検証はNewSafeClientのDialer側が担う。
func (g *UpstreamGuard) ValidateBaseURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty upstream URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid upstream URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in upstream URL: %s", rawURL)
	}

	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("blocked IP address: %s", ip.String())
		}
		return nil
	}

	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("blocked host: %s", host)
	}

	return nil
}

// isAllowedScheme はURLスキームが許可リストに含まれるかを検証する。
func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isBlockedIP はIPアドレスがブロック対象のネットワーク範囲に含まれるかを検証する。
func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
