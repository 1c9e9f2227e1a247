package notify

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/hoyobot/hoyobot-go/pkg/config"
)

// feishuSender delivers messages through a Feishu (Lark) app bot.
type feishuSender struct {
	cfg    config.FeishuNotify
	client *lark.Client
}

func newFeishuSender(cfg config.FeishuNotify) *feishuSender {
	return &feishuSender{
		cfg:    cfg,
		client: lark.NewClient(cfg.AppID, cfg.AppSecret),
	}
}

func (s *feishuSender) name() string {
	return "feishu"
}

func (s *feishuSender) send(game, message string) error {
	content, err := json.Marshal(map[string]string{
		"text": fmt.Sprintf("[%s] %s", game, message),
	})
	if err != nil {
		return err
	}

	receiveIDType := s.cfg.ReceiveIDType
	if receiveIDType == "" {
		receiveIDType = "open_id"
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(s.cfg.ReceiveID).
			MsgType(larkim.MsgTypeText).
			Content(string(content)).
			Build()).
		Build()

	resp, err := s.client.Im.Message.Create(context.Background(), req)
	if err != nil {
		return err
	}
	if !resp.Success() {
		return fmt.Errorf("feishu error: %d %s", resp.Code, resp.Msg)
	}
	return nil
}
