// LMSサービスのエントリポイント。
// ユーザー・コース・課題・提出物・ディスカッションのAPIと、
// アップロードやログインなど信頼できない入力を受け付けるゲートウェイ処理を提供する。
package main

import (
	"context"
	"log"

	"github.com/nao1215/campus/internal/lms"
)

func main() {
	cfg, err := lms.LoadConfig()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := lms.NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("LMSサーバーの初期化に失敗: %v", err)
	}
	defer server.Close()

	log.Printf("LMSサービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Printf("LMSサービスの起動に失敗: %v", err)
	}
}
